package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/bus/mqtt"
	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/esb"
	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/framework"
	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/uart"
)

var brokerURL string

func init() {
	uart.SetupFlags()
	esb.SetupFlags()
	flag.StringVar(&brokerURL, "broker", brokerURL,
		"MQTT broker URL for connection state events, empty to disable.")
}

func main() {
	flag.Parse()

	port, err := uart.NewConfig().Open()
	if err != nil {
		glog.Exitf("serial device unavailable: %v", err)
	}

	conf := esb.NewConfig()
	link := conf.NewLink(port)
	link.Rebooter = execRebooter{}

	runner := framework.NewRunner().HandleSignals()
	if brokerURL != "" {
		notifier, err := mqtt.NewNotifier(brokerURL)
		if err != nil {
			glog.Exitf("event bus setup failed: %v", err)
		}
		link.Notifier = notifier
		runner.Go(framework.NamedRun("bus", notifier))
	}

	feed := newReportFeed()
	feed.HID = conf.NewHID(link, feed)
	runner.Go(
		framework.NamedRun("link", link),
		framework.NamedRun("feed", feed),
	)
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
