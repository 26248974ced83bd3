package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/amulet.go/pkg/env"
	"github.com/robotalks/amulet.go/pkg/link"
	"github.com/robotalks/amulet.go/pkg/sim"
	"github.com/robotalks/amulet.go/pkg/transport/websocket"
)

var listenAddr = ":8080"

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "Listen address for websocket connections.")
	env.SetupFlags()
}

func main() {
	flag.Parse()

	conf := env.NewConfig()
	if err := conf.Load(); err != nil {
		glog.Exitln(err)
	}
	started := time.Now()
	serve := func(ctx context.Context, t link.Transport) error {
		d, err := sim.New(t, conf.Link)
		if err != nil {
			return err
		}
		if err := d.Engine().RPCs().Register(0, func() { glog.Info("rpc 0 invoked") }); err != nil {
			return err
		}
		if err := d.Engine().Scripts().Register("uptime", func() int32 {
			return int32(time.Since(started) / time.Second)
		}); err != nil {
			return err
		}
		glog.Infof("display connected")
		return d.Run(ctx)
	}

	http.Handle("/", websocket.Handler(serve))
	glog.Infof("listening on %s", listenAddr)
	if err := http.ListenAndServe(listenAddr, nil); err != nil {
		glog.Exitln(err)
	}
}
