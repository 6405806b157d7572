// Package config provides configuration parsing for stacknav projects.
//
// The configuration is stored in stacknav.json, stacknav.yaml or
// stacknav.yml at the project root. This package handles loading, saving,
// and validating configuration, and converts it to router input.
//
// # Configuration File Structure
//
//	name: mail
//	basePath: /app
//	duplicates: last-wins
//	routes:
//	  - path: /
//	    component: Home
//	  - path: /inbox/[id]
//	    component: Message
//	    type: message
//	    breakpoints:
//	      - {breakpoint: 0, minVw: 100}
//	      - {breakpoint: 900, minVw: 40}
//	layouts:
//	  /inbox: InboxLayout
//	  /inbox#compact: CompactLayout
//	errors:
//	  /: NotFound
//	transition:
//	  window: 300ms
//	viewport:
//	  width: 1280
//	inspect:
//	  addr: ":7070"
//	  snapshot:
//	    bucket: my-bucket
//	    region: eu-west-1
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	opts, err := cfg.RouterOptions()
//	reg, err := router.New(cfg.RouterConfig(), opts...)
package config
