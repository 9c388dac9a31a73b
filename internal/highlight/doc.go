// Package highlight applies a yank batch to an editor buffer and removes it
// again once the highlight duration has passed.
//
// A Controller makes exactly one Apply call per batch and, if it succeeds,
// schedules exactly one Clear for the batch's line range. Pending clears are
// never cancelled; a later yank over the same lines may have its highlight
// removed early by an earlier clear.
package highlight
