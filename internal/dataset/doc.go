// Package dataset loads digitized shoreline exports into shoreline.Dataset
// values.
//
// A Loader walks one input directory, reads each accepted file (plain or
// gzip-compressed delimited text, or the first sheet of an .xlsx workbook),
// resolves the coordinate and value columns through a Schema and snaps every
// longitude onto the configured grid. Rows that cannot be used are skipped
// and counted in the LoadReport; files whose header does not satisfy the
// schema are skipped with a warning. Read failures abort the load.
//
// Datasets receive source ids in the order their files are loaded, which is
// lexical path order.
package dataset
