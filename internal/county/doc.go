// Package county partitions a cleaned county token stream into per-county groups.
package county
