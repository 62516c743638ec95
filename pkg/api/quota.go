package api

// Quota is a directory usage limit on a volume. Sizes are bytes; Used is
// best effort and may lag behind the bricks.
type Quota struct {
	Path  string
	Limit uint64
	Used  uint64
}
