// Package table assembles a state's cleaned tokens into a fixed-column StateTable.
//
// A StateTable has the state aggregate as its first row, followed by one row per county
// in the order the counties were encountered. Every row carries exactly four cells:
// state, confirmed, deaths and fatality_rate (%). Rows that do not fit that shape are
// rejected with a typed error instead of being padded or defaulted.
package table
