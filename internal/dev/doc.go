// Package dev provides configuration hot reload for the inspector server.
//
// A Watcher polls the project's configuration file and scripts for
// modification. A Reloader reacts to configuration changes by loading the
// file again, building a new session and swapping it into the running
// server; when the new configuration is invalid the old session keeps
// running and the error is reported.
//
// # Usage
//
//	w := dev.NewWatcher(dev.WatcherConfig{Paths: []string{cfg.Path()}})
//	r := dev.NewReloader(dev.ReloaderConfig{
//	    Dir:   cfg.Dir(),
//	    Build: buildApp,
//	    Swap:  srv.Swap,
//	})
//	w.OnChange(func(c dev.Change) { r.HandleChange(c) })
//	go w.Start(ctx)
package dev
