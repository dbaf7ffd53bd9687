// Package token turns raw text blocks scraped from a rendered page into typed tokens.
//
// Each line of a block becomes either a Name (a place label) or a Number (a count or a
// percentage). Display formatting such as thousands separators and percent signs is
// stripped, and lines carrying a daily-change annotation ("+N") are dropped entirely.
// The kind of a token is decided once here and never re-inspected from its text later.
package token
