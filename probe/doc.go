// Package probe implements the scatter-gather query engine: broadcast one
// request to an unknown set of responders, collect replies on an ephemeral
// inbox for a bounded window, and merge them into a deterministic snapshot.
//
// The Collector is single-use. It opens its reply subscription before the
// request is published so a responder that answers immediately is never
// missed, then collects until the window closes, an expected reply count is
// reached, or the caller cancels. Replies are keyed by responder identity;
// a later reply from the same responder replaces the earlier one wholesale.
//
// Aggregation is a pure function of the final reply set: hosts are sorted
// ascending by identity, so two snapshots built from the same replies
// compare equal no matter what order the replies arrived in.
package probe
