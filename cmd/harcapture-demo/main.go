// Command harcapture-demo drives a headless Chrome instance to a single
// URL and writes the resulting HAR to disk. It exists to exercise
// pkg/webdriver end to end against a real browser; production embedders
// call Attach directly from their own test harness instead of shelling
// out to this binary.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/dev-console/harcapture/pkg/webdriver"
)

func main() {
	url := flag.String("url", "https://example.com", "page to navigate to")
	out := flag.String("out", "capture.har", "output HAR path (.gz for compressed)")
	timeout := flag.Duration("timeout", 30*time.Second, "navigation timeout")
	flag.Parse()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	opts := webdriver.DefaultOptions()
	opts.CreatorName = "harcapture-demo"

	session, err := webdriver.Attach(browserCtx, browserCtx, opts)
	if err != nil {
		log.Fatalf("attach: %v", err)
	}

	navCtx, cancelNav := context.WithTimeout(browserCtx, *timeout)
	defer cancelNav()
	if err := chromedp.Run(navCtx, chromedp.Navigate(*url)); err != nil {
		log.Fatalf("navigate: %v", err)
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStop()
	if err := session.StopAndSave(stopCtx, *out); err != nil {
		log.Fatalf("stop and save: %v", err)
	}

	stats := session.Stats()
	log.Printf("wrote %s: %d requests, %d entries", *out, stats.RequestsSeen, stats.EntriesEmitted)
}
