package loam

import (
	"context"
	"net/http"
	"net/url"

	"github.com/loamstack/loam-go/model"
)

// GetUser returns the authenticated account.
func (c *Client) GetUser(ctx context.Context) (*model.User, error) {
	if _, err := c.requireSession("user"); err != nil {
		return nil, err
	}
	var user model.User
	if err := c.requestJSON(ctx, "user", http.MethodGet, "/user", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrganizations lists the organizations the account belongs to.
func (c *Client) GetOrganizations(ctx context.Context) ([]model.Organization, error) {
	if _, err := c.requireSession("organizations"); err != nil {
		return nil, err
	}
	var page model.OrganizationsPage
	if err := c.requestJSON(ctx, "organizations", http.MethodGet, "/organizations", nil, nil, &page); err != nil {
		return nil, err
	}
	orgs := make([]model.Organization, 0, len(page.Organizations))
	for _, env := range page.Organizations {
		orgs = append(orgs, env.Organization)
	}
	return orgs, nil
}

// GetOrganization fetches one organization by node identifier.
func (c *Client) GetOrganization(ctx context.Context, id model.OrganizationNodeID) (*model.Organization, error) {
	if _, err := c.requireSession("organization"); err != nil {
		return nil, err
	}
	var env model.OrganizationEnvelope
	if err := c.requestJSON(ctx, "organization", http.MethodGet, "/organizations/"+url.PathEscape(id.String()), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Organization, nil
}

// SwitchOrganization re-scopes the session to another organization and
// returns the refreshed session view.
func (c *Client) SwitchOrganization(ctx context.Context, id model.OrganizationNodeID) (*Session, error) {
	s, err := c.requireSession("switch-organization")
	if err != nil {
		return nil, err
	}
	query := url.Values{"organization_id": {id.String()}}
	if err := c.requestJSON(ctx, "switch-organization", http.MethodPut, "/session/switch-organization", query, nil, nil); err != nil {
		return nil, err
	}
	c.session.Store(&session{
		token:              s.token,
		organizationNodeID: id,
		expires:            s.expires,
	})
	return c.Session(), nil
}

// GetDatasets lists the datasets visible in the session's organization.
func (c *Client) GetDatasets(ctx context.Context) ([]model.DatasetEnvelope, error) {
	if _, err := c.requireSession("datasets"); err != nil {
		return nil, err
	}
	var datasets []model.DatasetEnvelope
	if err := c.requestJSON(ctx, "datasets", http.MethodGet, "/datasets", nil, nil, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// GetDataset fetches one dataset by node identifier.
func (c *Client) GetDataset(ctx context.Context, id model.DatasetNodeID) (*model.DatasetEnvelope, error) {
	if _, err := c.requireSession("dataset"); err != nil {
		return nil, err
	}
	var env model.DatasetEnvelope
	if err := c.requestJSON(ctx, "dataset", http.MethodGet, "/datasets/"+url.PathEscape(id.String()), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// CreateDataset creates a dataset in the session's organization.
func (c *Client) CreateDataset(ctx context.Context, req model.CreateDatasetRequest) (*model.DatasetEnvelope, error) {
	if _, err := c.requireSession("create-dataset"); err != nil {
		return nil, err
	}
	var env model.DatasetEnvelope
	if err := c.requestJSON(ctx, "create-dataset", http.MethodPost, "/datasets", nil, req, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// UpdateDataset renames a dataset or changes its description.
func (c *Client) UpdateDataset(ctx context.Context, id model.DatasetNodeID, req model.CreateDatasetRequest) (*model.DatasetEnvelope, error) {
	if _, err := c.requireSession("update-dataset"); err != nil {
		return nil, err
	}
	var env model.DatasetEnvelope
	if err := c.requestJSON(ctx, "update-dataset", http.MethodPut, "/datasets/"+url.PathEscape(id.String()), nil, req, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// DeleteDataset removes a dataset.
func (c *Client) DeleteDataset(ctx context.Context, id model.DatasetNodeID) error {
	if _, err := c.requireSession("delete-dataset"); err != nil {
		return err
	}
	return c.requestJSON(ctx, "delete-dataset", http.MethodDelete, "/datasets/"+url.PathEscape(id.String()), nil, nil, nil)
}

// GetPackage fetches one package by node identifier.
func (c *Client) GetPackage(ctx context.Context, id model.PackageID) (*model.Package, error) {
	if _, err := c.requireSession("package"); err != nil {
		return nil, err
	}
	var env model.PackageEnvelope
	if err := c.requestJSON(ctx, "package", http.MethodGet, "/packages/"+url.PathEscape(id.String()), nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Content, nil
}
