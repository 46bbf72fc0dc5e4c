// Package client provides a reusable client for the agent's Unix command
// socket.
//
// It frames one JSON request per line and one JSON response per line, and
// serializes calls so a single client is safe for concurrent use.
package client
