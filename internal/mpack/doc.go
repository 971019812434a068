// Package mpack binds the MessagePack wire codec used by all log tooling:
// records are string-keyed maps, log files are raw concatenations of encoded
// records with no outer framing, and readers rely on the codec's own
// self-describing boundaries to split the stream.
package mpack
