// Package services contains the application services behind the SecuraPass
// CLI. They combine the backend client, the job poller, the local cache and
// the report writer.
package services
