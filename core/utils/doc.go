// Package utils provides small conversion helpers shared by the catalog
// adapters. Database drivers hand back column values as int64, []byte, string
// or time.Time depending on the backend; these helpers normalise them so the
// matching policy can compare attributes as plain strings.
package utils
