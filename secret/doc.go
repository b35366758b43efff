// Package secret expands environment variables and secret references in
// configuration values.
//
// References use the prefix "secretref:":
//   - Full value:  secretref:file:redis_password
//   - Inline use:  mongodb://monitor:secretref:file:mongo_password@db:27017
//
// FileProvider serves references from a mounted secrets directory.
package secret
