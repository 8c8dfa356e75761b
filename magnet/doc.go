// Package magnet extracts canonical BitTorrent info hashes from magnet URIs and
// free-form strings, and builds magnet URIs from known hashes.
//
// The extractor is deliberately tolerant: any input containing a run of exactly
// 40 hexadecimal characters yields that run upper-cased, so bare hashes, full
// magnet URIs and pasted text all work. Base32 (32 character) hashes are not
// decoded and produce an empty InfoHash.
//
// # Usage
//
//	hash := magnet.ExtractInfoHash("magnet:?xt=urn:btih:c12fe1c06bba254a9dc9f519b335aa7c1367a88a")
//	if hash == "" {
//	    // unsupported or ambiguous input
//	}
//
//	uri, err := magnet.Build(hash, "Some.Release.1080p")
package magnet
