package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	loam "github.com/loamstack/loam-go"
	"github.com/loamstack/loam-go/config"
	"github.com/loamstack/loam-go/internal/logging"
	"github.com/loamstack/loam-go/model"
)

// app carries the resolved configuration and client across subcommands.
type app struct {
	cfg    *config.Config
	client *loam.Client
	log    *slog.Logger

	profilePath string
	environment string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "loam-agent",
		Short:         "Upload data to the Loam platform",
		Long:          "loam-agent uploads files to the Loam platform with resumable, checksum-verified chunked transfers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.profilePath, "profile", config.DefaultProfilePath(), "path to the profile file")
	root.PersistentFlags().StringVar(&a.environment, "environment", "", "platform environment (production, nonproduction, local)")

	root.AddCommand(
		newLoginCmd(a),
		newUploadCmd(a),
		newDatasetsCmd(a),
		newStatusCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.profilePath)
	if err != nil {
		return err
	}
	if a.environment != "" {
		env, err := config.ParseEnvironment(a.environment)
		if err != nil {
			return err
		}
		cfg.Environment = env
	}
	a.cfg = cfg
	a.log = logging.Setup(cfg.LogLevel, cfg.LogFormat)

	opts := []loam.Option{
		loam.WithEnvironment(cfg.Environment),
		loam.WithConcurrency(cfg.Concurrency),
		loam.WithLogger(logging.Component(a.log, "client")),
	}
	if cfg.ChunkSize > 0 {
		opts = append(opts, loam.WithChunkSize(cfg.ChunkSize))
	}
	if cfg.APIToken != "" {
		opts = append(opts, loam.WithSessionToken(model.SessionToken(cfg.APIToken)))
		if cfg.Organization != "" {
			opts = append(opts, loam.WithOrganization(model.OrganizationNodeID(cfg.Organization)))
		}
	}

	client, err := loam.New(opts...)
	if err != nil {
		return err
	}
	a.client = client
	return nil
}

// ensureSession logs in with the configured credentials when no token was
// seeded. Commands call it before touching authenticated endpoints.
func (a *app) ensureSession(cmd *cobra.Command) error {
	if a.client.Session() != nil {
		return nil
	}
	if a.cfg.Email == "" || a.cfg.Password == "" {
		return errNoCredentials
	}
	_, err := a.client.Login(cmd.Context(), a.cfg.Email, a.cfg.Password)
	return err
}
