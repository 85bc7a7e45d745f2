package grandtree

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// dotImageSize is the edge length of the sparkle texture in pixels.
const dotImageSize = 32

var (
	whitePixelImage *ebiten.Image
	dotImage        *ebiten.Image
)

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Used by flat-shaded triangles.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// ensureDotImage returns a lazily-initialized feathered white circle.
func ensureDotImage() *ebiten.Image {
	if dotImage == nil {
		dotImage = ebiten.NewImage(dotImageSize, dotImageSize)
		dotImage.WritePixels(generateCircle(dotImageSize / 2))
	}
	return dotImage
}

// generateCircle returns premultiplied RGBA pixels of a feathered white
// circle with the given radius. Uses smoothstep falloff.
func generateCircle(radius int) []byte {
	size := radius * 2
	pix := make([]byte, size*size*4)
	r := float64(radius)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			dist := (dx*dx + dy*dy) / (r * r)
			alpha := 0.0
			if dist < 1 {
				t := 1 - dist
				alpha = t * t * (3 - 2*t)
			}
			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	return pix
}

func (src sourceImage) image() *ebiten.Image {
	if src == sourceDot {
		return ensureDotImage()
	}
	return ensureWhitePixel()
}

// batchKey groups render commands that can be submitted in a single draw call.
type batchKey struct {
	blend  BlendMode
	source sourceImage
}

func commandBatchKey(cmd *RenderCommand) batchKey {
	return batchKey{blend: cmd.BlendMode, source: cmd.source}
}

// submitBatches iterates sorted commands, coalescing consecutive same-key
// commands into a single DrawTriangles32 call.
func (s *Scene) submitBatches(target *ebiten.Image) {
	if len(s.commands) == 0 {
		return
	}

	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]

	var currentKey batchKey
	inRun := false
	for i := range s.commands {
		cmd := &s.commands[i]
		key := commandBatchKey(cmd)
		if inRun && key != currentKey {
			s.flushBatch(target, currentKey)
		}
		currentKey = key
		inRun = true
		s.appendCommand(cmd)
	}
	s.flushBatch(target, currentKey)
}

// appendCommand copies a command's vertex range into the batch and rebases
// its indices.
func (s *Scene) appendCommand(cmd *RenderCommand) {
	base := uint32(len(s.batchVerts))
	s.batchVerts = append(s.batchVerts, s.arenaVerts[cmd.vertStart:cmd.vertStart+cmd.vertCount]...)
	for _, idx := range s.arenaInds[cmd.indStart:cmd.indEnd] {
		s.batchInds = append(s.batchInds, base+idx)
	}
}

// flushBatch submits accumulated vertices as a single DrawTriangles32 call.
func (s *Scene) flushBatch(target *ebiten.Image, key batchKey) {
	if len(s.batchVerts) == 0 {
		return
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = key.blend.EbitenBlend()
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	if key.source == sourceDot {
		triOp.Filter = ebiten.FilterLinear
	}

	target.DrawTriangles32(s.batchVerts, s.batchInds, key.source.image(), &triOp)
	s.drawCalls++

	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]
}
