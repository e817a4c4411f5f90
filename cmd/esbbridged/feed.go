package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/esb"
	"github.com/GammaKinematics/zmk-feature-esb-transport/pkg/framework"
)

// reportFeed stands in for the core keyboard firmware: it reads report
// lines from stdin ("kbd HEX", "consumer HEX", "mouse HEX"), keeps the
// latest report of each kind as the HID report source, and pushes each
// update over the link.
type reportFeed struct {
	HID *esb.HID

	lock     sync.Mutex
	keyboard []byte
	consumer []byte
	mouse    []byte
}

func newReportFeed() *reportFeed {
	return &reportFeed{}
}

// KeyboardReport implements esb.ReportSource.
func (f *reportFeed) KeyboardReport() ([]byte, error) {
	return f.report(&f.keyboard)
}

// ConsumerReport implements esb.ReportSource.
func (f *reportFeed) ConsumerReport() ([]byte, error) {
	return f.report(&f.consumer)
}

// MouseReport implements esb.ReportSource.
func (f *reportFeed) MouseReport() ([]byte, error) {
	return f.report(&f.mouse)
}

func (f *reportFeed) report(slot *[]byte) ([]byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if *slot == nil {
		return nil, fmt.Errorf("no report yet")
	}
	return *slot, nil
}

// Run implements framework.Runnable.
func (f *reportFeed) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	return framework.RunWithContext(ctx, func() error {
		for scanner.Scan() {
			f.handleLine(scanner.Text())
		}
		return scanner.Err()
	})
}

func (f *reportFeed) handleLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	payload, err := hex.DecodeString(strings.Join(fields[1:], ""))
	if err != nil {
		glog.Warningf("bad report payload %q: %v", line, err)
		return
	}

	var send func() error
	f.lock.Lock()
	switch fields[0] {
	case "kbd":
		f.keyboard, send = payload, f.HID.SendKeyboardReport
	case "consumer":
		f.consumer, send = payload, f.HID.SendConsumerReport
	case "mouse":
		f.mouse, send = payload, f.HID.SendMouseReport
	}
	f.lock.Unlock()
	if send == nil {
		glog.Warningf("unknown report kind %q", fields[0])
		return
	}
	if err := send(); err != nil {
		// no retry; the report for this cycle is dropped
		glog.Warningf("send %s report: %v", fields[0], err)
	}
}
