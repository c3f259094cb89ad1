// Command reelsctl is a dev CLI for reelscribe maintenance and debugging tasks.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chromedp/chromedp"
	"github.com/pkg/browser"

	browseropts "github.com/ibeckermayer/reelscribe/internal/browser"
	"github.com/ibeckermayer/reelscribe/internal/config"
	"github.com/ibeckermayer/reelscribe/internal/keywords"
	"github.com/ibeckermayer/reelscribe/internal/record"
	"github.com/ibeckermayer/reelscribe/internal/types"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "bot-test":
		runBotTest()
		os.Exit(0)
	case "open":
		if len(os.Args) < 3 {
			fmt.Println("Usage: reelsctl open <config|output>")
			os.Exit(1)
		}
		runOpen(os.Args[2])
	case "clean":
		runClean(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: reelsctl <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  bot-test          Open bot.sannysoft.com to audit browser fingerprint")
	fmt.Println("  open config      Open config file in default editor")
	fmt.Println("  open output      Open output directory in file explorer")
	fmt.Println("  clean [--delete] Remove records matching no keyword (dry run by default)")
}

func runBotTest() {
	log.Println("Opening bot.sannysoft.com with stealth browser options...")

	opts := browseropts.Options(browseropts.Config{Headless: false}) // visible so you can read the report

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	go func() {
		err := chromedp.Run(ctx,
			chromedp.Navigate("https://bot.sannysoft.com"),
		)
		if err != nil {
			log.Printf("Failed to navigate: %v", err)
		}
	}()

	fmt.Println("Press Enter to end program...")
	fmt.Scanln()

	log.Println("Done.")
}

func runOpen(target string) {
	var path string
	var err error

	switch target {
	case "config":
		path, err = config.ConfigPath()
	case "output":
		cfg := config.Default()
		cfg.ApplyEnv()
		path = cfg.Output.Dir
	default:
		fmt.Printf("Unknown target: %s\n", target)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Failed to get path: %v", err)
	}

	if err := browser.OpenFile(path); err != nil {
		log.Fatalf("Failed to open: %v", err)
	}
}

// runClean prunes persisted records whose caption and transcription match no
// keyword. Dry run unless --delete is passed.
func runClean(args []string) {
	del := false
	for _, a := range args {
		if a != "--delete" {
			fmt.Printf("Unknown flag: %s\n", a)
			os.Exit(1)
		}
		del = true
	}

	cfg := config.Default()
	cfg.ApplyEnv()

	pred := keywords.NewPredicate(true, cfg.Keywords.Override, cfg.Keywords.List)
	keep := func(rec types.ExtractionRecord) bool {
		return pred(rec.Caption) || pred(rec.Transcription)
	}

	kept, removed, err := record.Prune(cfg.Output.Dir, keep, !del)
	if err != nil {
		log.Fatalf("Failed to scan output directory: %v", err)
	}

	fmt.Printf("Found %d record files\n", len(kept)+len(removed))
	fmt.Printf("Keeping: %d\n", len(kept))
	if del {
		fmt.Printf("Deleted: %d\n", len(removed))
	} else {
		fmt.Printf("Would delete: %d\n", len(removed))
	}
	for _, p := range removed {
		fmt.Printf("  %s\n", filepath.Base(p))
	}
	if !del && len(removed) > 0 {
		fmt.Println("Re-run with --delete to remove these files")
	}
}
