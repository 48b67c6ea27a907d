// Package schema checks that the Racktables database has the tables and
// columns rackops reads and writes.
//
// The inventory gorm models are the source of truth: each model's table is
// inspected with SHOW COLUMNS and every `column:` tag must be present. A
// `type:` tag is compared loosely; two enums always match.
package schema
