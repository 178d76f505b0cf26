// Package loam is the Go client for the Loam data platform. It provides
// resumable, checksum-verified chunked uploads into the platform's
// object-storage-backed ingestion service, plus the surrounding API
// surface those uploads need: login, organizations, datasets, and
// packages.
//
// Files are split into fixed-size chunks, each carrying a SHA-256
// checksum, and sent through a bounded worker pool. When a transfer is
// interrupted the client asks the platform which parts it is still
// waiting on and resends only those, so no byte is uploaded twice.
// Rate limiting and transient server failures are retried with a linear
// backoff; authorization failures abort immediately.
//
// Example usage:
//
//	client, err := loam.New(loam.WithEnvironment(config.Production))
//	if err != nil {
//	    return err
//	}
//	if _, err := client.Login(ctx, email, password); err != nil {
//	    return err
//	}
//
//	upload, err := model.NewFlatUpload(billy.NewOSFS("/"), "", "/data/scan.nii")
//	if err != nil {
//	    return err
//	}
//	manifests, err := client.UploadFiles(ctx, datasetID, nil, false,
//	    []*model.FileUpload{upload}, progress.NoProgress{})
package loam
