// Package provider implements the collaborators that supply raw project
// data to the analytics service: local payload files, GitHub, Jira Cloud,
// a deterministic synthetic generator, and external plugin binaries. Every
// provider satisfies application.DataSource and returns payloads in the
// collaborator contract shape; translation into canonical entities happens
// downstream in the normalizer, never here.
package provider
