// Package models defines the core domain records for Indica.
//
// # Records
//
//   - User: a registered account, keyed by username
//   - Group: a topical community with members and categories
//   - Recommendation: a rated, tagged post inside a group
//
// # Design Principles
//
//  1. **One shape per record**: every field present after the migration
//     boundary; business code never probes for missing fields
//  2. **Legacy-compatible encoding**: JSON tags match the field names the
//     flat-file store has always used, so old data decodes directly
//  3. **Avoid circular references**: records reference each other by ID or
//     username, never by pointer
//
// Records older than the current shape (users stored as bare password
// strings, recommendations without dislike fields, groups without a
// visibility flag) are brought up to these shapes by internal/migrate
// before they reach any caller.
package models
