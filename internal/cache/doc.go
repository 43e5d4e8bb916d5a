// Package cache provides an in-memory LRU cache for immutable blocks.
//
// Cached blocks come from document store files, fast field columns, and
// generic blob reads; keys carry a kind tag so those key spaces never
// collide. The cache can be tied to the resource controller, in which case
// every cached byte is charged against the global memory budget and
// eviction gives it back.
package cache
