// linkscan runs the link detector over a text file or stdin and prints
// what the bot would see, flagging shortener/throwaway domains.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"linkguard-bot/linkdetect"
)

var flInput = flag.String("f", "-", "file to scan, - for stdin")

func main() {
	flag.Parse()
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	in := os.Stdin
	if *flInput != "-" {
		f, err := os.Open(*flInput)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open input")
		}
		defer f.Close()
		in = f
	}

	d := linkdetect.New()
	total := 0
	suspicious := 0

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for sc.Scan() {
		for _, l := range d.ExtractLinks(sc.Text()) {
			total++
			if linkdetect.IsSuspicious(l) {
				suspicious++
				fmt.Printf("%s\tsuspicious\n", l)
			} else {
				fmt.Println(l)
			}
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to read input")
	}

	log.Info().Int("links", total).Int("suspicious", suspicious).Msg("scan complete")
}
