// Package config loads hallocord.json.
//
// # Configuration File Structure
//
//	{
//	  "gateway": {
//	    "url": "wss://gateway.discord.gg",
//	    "version": 10,
//	    "encoding": "json"
//	  },
//	  "intents": ["GUILDS", "GUILD_MESSAGES"],
//	  "properties": {
//	    "os": "linux",
//	    "browser": "hallocord",
//	    "device": "hallocord"
//	  },
//	  "compress": true,
//	  "metrics": {
//	    "enabled": true,
//	    "address": "127.0.0.1:9464"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "json"
//	  }
//	}
//
// The token is never stored in the file. It comes from HALLOCORD_TOKEN or
// the --token flag.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.ApplyEnv(os.Getenv)
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
