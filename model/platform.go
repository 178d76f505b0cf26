package model

import "time"

// Organization is a tenant on the platform. Upload routes address it by
// node identifier.
type Organization struct {
	ID     OrganizationID     `json:"id"`
	NodeID OrganizationNodeID `json:"nodeId"`
	Name   string             `json:"name"`
}

// OrganizationEnvelope wraps the organization in the shape the platform
// returns it.
type OrganizationEnvelope struct {
	Organization Organization `json:"organization"`
}

// OrganizationsPage is the list-organizations response body.
type OrganizationsPage struct {
	Organizations []OrganizationEnvelope `json:"organizations"`
}

// Dataset is the upload target container.
type Dataset struct {
	ID          DatasetID     `json:"id"`
	NodeID      DatasetNodeID `json:"nodeId"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// DatasetEnvelope wraps a dataset together with its child package count.
type DatasetEnvelope struct {
	Content      Dataset `json:"content"`
	PackageCount int     `json:"packageCount"`
}

// CreateDatasetRequest is the body for dataset creation.
type CreateDatasetRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Package is a unit of content inside a dataset. Completed uploads append
// their manifests to new or existing packages.
type Package struct {
	ID          PackageID     `json:"id"`
	Name        string        `json:"name"`
	PackageType string        `json:"packageType"`
	DatasetID   DatasetNodeID `json:"datasetId"`
	State       string        `json:"state,omitempty"`
}

// PackageEnvelope wraps a package in the shape the platform returns it.
type PackageEnvelope struct {
	Content Package `json:"content"`
}

// User is the authenticated account.
type User struct {
	ID                    string `json:"id"`
	Email                 string `json:"email"`
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	PreferredOrganization string `json:"preferredOrganization,omitempty"`
}

// CognitoConfig is the authentication bootstrap response. The token pool's
// app client drives the username/password login flow.
type CognitoConfig struct {
	Region    string     `json:"region"`
	TokenPool CognitoPool `json:"tokenPool"`
}

// CognitoPool identifies one Cognito user pool and its app client.
type CognitoPool struct {
	ID          string `json:"id"`
	AppClientID string `json:"appClientId"`
}
