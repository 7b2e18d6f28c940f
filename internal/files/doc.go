// Package files discovers the delimited exports a run reads.
//
// Discovery walks an input directory and returns the files accepted by a
// Filter: extension match (case-insensitive, a trailing .gz is looked
// through) and exclusion substrings. Results are sorted by path, which fixes
// the order in which datasets receive their source ids.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/data/shorelines")
//	found, err := discovery.FindDataFiles("Offset_CSV_files", files.Filter{
//	    Extensions: []string{".csv", ".txt"},
//	    Exclude:    []string{"2007"},
//	    Recursive:  true,
//	})
package files
