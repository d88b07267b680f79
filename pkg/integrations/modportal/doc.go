// Package modportal provides an HTTP client for the Factorio mod portal API.
//
// # Overview
//
// The portal (https://mods.factorio.com) publishes every third-party mod
// together with its releases. Each release carries a download path and the
// SHA-1 of the archive.
//
// # Usage
//
//	client := modportal.NewClient(backend, 24*time.Hour)
//
//	info, err := client.FetchMod(ctx, "flib", false)
//	if err != nil {
//	    return err
//	}
//	rel, err := info.ResolveVersion("") // latest
//	body, size, err := client.Download(ctx, rel, creds.Username, creds.Token)
//
// # ModInfo
//
// [Client.FetchMod] returns a [ModInfo] with the mod's name, title, summary,
// owner and releases. [ModInfo.Versions] sorts versions numerically per
// component, so "1.10.0" follows "1.9.0".
//
// # Caching
//
// Metadata responses are cached under "modportal:<name>". Pass refresh=true
// to bypass the cache. Archive downloads are streamed and never cached.
//
// # Authentication
//
// Metadata is public. Archive downloads require the username and service
// token from the game's player-data.json, sent as query parameters.
package modportal
