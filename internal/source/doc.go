// Package source supplies the raw text blocks the parser works on.
//
// A Source yields one pair of blocks per state: the state aggregate row and the
// concatenated county rows. The HTML source reads an already-rendered page, from a URL or
// a saved file, selects the state and county elements with goquery, and rebuilds their
// inner text one value per line. The Static source serves pairs held in memory.
package source
