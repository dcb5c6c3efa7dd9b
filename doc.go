// Package hallocord is a client for a Discord-style real-time gateway.
//
// A Client keeps at most one gateway connection open, identifies with a
// bot token, answers the server's heartbeat schedule and hands Dispatch
// events to subscribers:
//
//	client := hallocord.New(
//	    hallocord.WithIntents(intents.Guilds | intents.GuildMessages),
//	    hallocord.WithCompression(gateway.CompressionZlib),
//	)
//	defer client.Close()
//
//	client.OnDispatch(func(e gateway.Event) {
//	    log.Printf("%s #%d", e.Name, e.Sequence)
//	})
//
//	if err := client.Login(os.Getenv("HALLOCORD_TOKEN")); err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Wait(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Session resumption, automatic reconnection and sharding are not
// provided. After a close, call Connect or Login again.
package hallocord
