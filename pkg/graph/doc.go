// Package graph holds the node graph of a scene composition: typed nodes
// with schema-checked properties, directed output->input connections, the
// selection, and the canvas layout used to place sockets and hit-test
// pointer positions.
package graph
