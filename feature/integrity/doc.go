// Package integrity provides infrastructure health checks.
//
// # Checks Provided
//
//   - Storage: the asset bucket exists (fixable by creating it).
//   - Schema: the scene table carries every column of database.SceneDocument
//     with the declared types (fixable by migrating it).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the bucket check (supports ?fix=true).
//   - GET /integrity/schema : Runs the scene table check (supports ?fix=true).
package integrity
