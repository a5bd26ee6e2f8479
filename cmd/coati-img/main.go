// coati-img inspects and converts sprite atlas images.
package main

import (
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/Faultbox/coati/internal/engine/debug"
	"github.com/Faultbox/coati/internal/engine/texture"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "convert", "c":
		cmdConvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`coati-img - sprite atlas image utility

Usage:
  coati-img <command> [options]

Commands:
  info <image>                       Show size and pixel statistics
  convert [-key] <image> <out.png>   Convert to PNG (optionally keying out magenta)

Supported inputs: png, jpeg, gif, bmp, tga (uncompressed and RLE truecolour)

Examples:
  coati-img info sprites.tga
  coati-img convert -key sprites.bmp sprites.png`)
}

func decode(path string) image.Image {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	img, err := texture.Decode(path, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", path, err)
		os.Exit(1)
	}
	return img
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: coati-img info <image>")
		os.Exit(1)
	}

	rgba := texture.ToRGBA(decode(args[0]))
	b := rgba.Bounds()

	var transparent, keyed int
	for i := 0; i < len(rgba.Pix); i += 4 {
		px := rgba.Pix[i : i+4 : i+4]
		if px[3] == 0 {
			transparent++
		}
		if px[0] == texture.Magenta.R && px[1] == texture.Magenta.G && px[2] == texture.Magenta.B {
			keyed++
		}
	}

	fmt.Printf("File:        %s\n", args[0])
	fmt.Printf("Size:        %dx%d\n", b.Dx(), b.Dy())
	fmt.Printf("Pixels:      %d\n", b.Dx()*b.Dy())
	fmt.Printf("Transparent: %d\n", transparent)
	fmt.Printf("Magenta:     %d\n", keyed)
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	key := fs.Bool("key", false, "Make magenta pixels transparent")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: coati-img convert [-key] <image> <out.png>")
		os.Exit(1)
	}

	rgba := texture.ToRGBA(decode(fs.Arg(0)))
	if *key {
		texture.ApplyColourKey(rgba, texture.Magenta)
	}

	if err := debug.WritePNG(fs.Arg(1), rgba); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", fs.Arg(1), rgba.Bounds().Dx(), rgba.Bounds().Dy())
}
