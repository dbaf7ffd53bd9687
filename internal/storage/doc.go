// Package storage provides JSON-based persistence for run snapshots.
//
// After each export the per-state totals are written to snapshot.json in the data
// directory. The next run loads that file and reports how confirmed cases and deaths
// moved for every state since then. The default storage location is
// ~/.local/share/covid19-scraper/.
package storage
