// Package clients puts a uniform control surface over the supported torrent
// client backends.
//
// Every backend implements Client. Callers hold the interface and never need
// to know which wire protocol sits behind it:
//
//	c, err := clients.New(cfg, clients.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	hash, err := c.AddMagnet(ctx, "magnet:?xt=urn:btih:...")
//
// IDs returned by Client.ID are stable external keys (configuration values,
// icon names, persisted references) and must not change between releases.
package clients
