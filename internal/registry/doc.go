// Package registry holds the two mappings a host reads at load time: node
// identifier to node class, and node identifier to display name.
//
// Nodes are registered once at startup. Validate checks that every class is
// internally consistent before a host starts invoking nodes.
package registry
