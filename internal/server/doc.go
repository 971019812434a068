// Package server serves the most recent record of a growing mpack log file
// over TCP. A Service runs two loops, the tailer and the connection
// acceptor, and answers each client "get" request with the codec-encoded
// bytes of the latest record.
package server
