// Package report turns raw group-by-month station reports into tidy tables.
//
// Parse extracts the wide data block (one row per water year with a date, snow
// depth, and snow-water-equivalent triplet per month), Pivot reshapes it into one
// row per station, water year, and month, and WriteCSV encodes the result.
package report
