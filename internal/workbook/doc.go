// Package workbook collects assembled state tables and writes them as an Excel workbook.
//
// Each state becomes one sheet named after the state, with the header row
// state, confirmed, deaths, fatality_rate (%) followed by the state aggregate row and
// its counties in encounter order.
package workbook
