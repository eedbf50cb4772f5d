package engine

// DefaultPrefix namespaces every physical key written by the engine.
const DefaultPrefix = "ssnake:"

// indexKey derives the physical key of one (object, index) pair. The
// derivation is the routing contract: the same pair always yields the same
// key, and therefore the same connection for a fixed cluster configuration.
func (e *Engine) indexKey(obj, index string) string {
	return e.prefix + "obj:" + obj + ":idx:" + index
}

// collectionKey derives the physical key of the per-object set that tracks
// which indexes exist for obj.
func (e *Engine) collectionKey(obj string) string {
	return e.prefix + obj + ":idxs"
}
