// Package pkg provides the core libraries for glitchpaper, a wallpaper
// rotation daemon that plays corrupted-JPEG transitions between images.
//
// # Overview
//
// The pkg directory is organized by stage:
//
//  1. [discovery] - find images on disk and convert foreign formats to JPEG
//  2. [glitch] - the JPEG corruption transform
//  3. [cache] - content-addressed on-disk frame store and retry helpers
//  4. [generator] - render every frame of every image before rotation starts
//  5. [rotation] - the ordered wallpaper list and transition sequences
//  6. [backend] - external wallpaper setters with fallback and frame pacing
//  7. [daemon] - the periodic rotation loop
//
// Supporting packages: [source] (image identity by content hash),
// [command] (external program execution), [errors] (structured errors),
// [observability] (cache and display hooks), and [buildinfo].
//
// # Architecture
//
// The data flow through glitchpaper:
//
//	image directory
//	      ↓
//	 [discovery] (walk, convert, hash)
//	      ↓
//	 [generator] + [cache] + [glitch] (render N frames per image)
//	      ↓
//	 [rotation] (order, transition sequences)
//	      ↓
//	 [daemon] + [backend] (play one transition per period)
//
// # Quick Start
//
// Render the frames for a directory and play one transition:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/glitchpaper/pkg/backend"
//	    "github.com/matzehuels/glitchpaper/pkg/cache"
//	    "github.com/matzehuels/glitchpaper/pkg/daemon"
//	    "github.com/matzehuels/glitchpaper/pkg/discovery"
//	    "github.com/matzehuels/glitchpaper/pkg/generator"
//	    "github.com/matzehuels/glitchpaper/pkg/rotation"
//	)
//
//	frames, _ := cache.NewFrameCache(cacheDir, nil)
//	scanner := &discovery.Scanner{Converter: discovery.DefaultConverter(), OutDir: frames.ConvertedDir()}
//	gen := &generator.Generator{Cache: frames, Frames: 5}
//	wallpapers, _, _ := gen.Generate(ctx, scanner.Images(ctx, dir))
//
//	chain, _ := backend.NewChain(nil, backend.PlacementFill, nil)
//	d := &daemon.Driver{
//	    Rotation: rotation.New(wallpapers, rotation.Options{Shuffle: true}),
//	    Player:   &backend.Dispatcher{Backends: chain, Delay: backend.Delay{Min: backend.DefaultDelayMin, Max: backend.DefaultDelayMax}},
//	}
//	d.Step(ctx)
package pkg
