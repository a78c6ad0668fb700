// Package deploymentmanager adapts the Google Cloud Deployment Manager v2 API
// to the operation package: Client.Get is an operation.Querier, and
// Client.Deploy starts the deployment whose operation is then awaited.
//
// Credentials come from the environment (Application Default Credentials)
// unless a key file is configured explicitly.
package deploymentmanager
