// Command jfademo computes a Voronoi diagram over random seed points via
// jump flooding and writes it as a PNG, one color per seed region.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math/rand"
	"os"

	"golang.org/x/image/draw"

	"github.com/gogpu/jumpflood"
	_ "github.com/gogpu/jumpflood/gpu"
)

func main() {
	var (
		reso    = flag.Int("reso", jumpflood.DefaultResolution, "grid side length")
		nseeds  = flag.Int("seeds", 64, "number of random seed points")
		seed    = flag.Int64("seed", 1, "random number seed")
		scale   = flag.Int("scale", 1, "integer upscale factor for the output image")
		output  = flag.String("output", "voronoi.png", "output file")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		jumpflood.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	extent := jumpflood.Extent{Width: 1, Height: 1}
	rng := rand.New(rand.NewSource(*seed))
	points := make([][2]float64, *nseeds)
	for i := range points {
		points[i] = [2]float64{rng.Float64(), rng.Float64()}
	}

	labels, err := jumpflood.Compute(points, extent, jumpflood.WithResolution(*reso))
	if err != nil {
		log.Fatalf("Compute failed: %v", err)
	}

	img := renderLabels(labels, *reso, *nseeds, rng)
	if *scale > 1 {
		img = upscale(img, *scale)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}

	log.Printf("Voronoi diagram saved to %s (%d seeds, %dx%d grid)\n",
		*output, *nseeds, *reso, *reso)
}

// renderLabels assigns each seed region a random opaque color. Unassigned
// cells (label 0) come out black; with any seeds present they cannot occur.
func renderLabels(labels []uint32, reso, nseeds int, rng *rand.Rand) *image.RGBA {
	palette := make([]color.RGBA, nseeds+1)
	palette[0] = color.RGBA{A: 0xff}
	for i := 1; i <= nseeds; i++ {
		palette[i] = color.RGBA{
			R: uint8(64 + rng.Intn(192)),
			G: uint8(64 + rng.Intn(192)),
			B: uint8(64 + rng.Intn(192)),
			A: 0xff,
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, reso, reso))
	for y := 0; y < reso; y++ {
		for x := 0; x < reso; x++ {
			img.SetRGBA(x, y, palette[labels[x+y*reso]])
		}
	}
	return img
}

// upscale enlarges the image by an integer factor with nearest-neighbor
// sampling, keeping region boundaries crisp.
func upscale(src *image.RGBA, factor int) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
