// Package grandtree renders an interactive, decorated 3D holiday tree with
// [Ebitengine].
//
// The tree's look is driven by a small [ViewState]: rotation speed, light
// intensity, theme, snow and camera backdrop. A [ViewModel] owns the state
// and is its single update entry point. Every accepted change recomposes a
// declarative [SceneDesc] from the memoized [Layout] and the theme's
// [Palette], and [Scene.Apply] reconciles it into a retained node tree that
// is drawn each frame.
//
// # Quick start
//
// [NewApp] wires everything from a [Config] and [Run] opens the window:
//
//	cfg, err := grandtree.LoadConfig("grandtree.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	app, err := grandtree.NewApp(grandtree.AppOptions{Config: cfg})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := grandtree.Run(app, grandtree.RunConfigFrom(cfg)); err != nil {
//		log.Fatal(err)
//	}
//
// # Rendering
//
// The engine is a software painter: every visible triangle becomes a
// [RenderCommand] with a camera depth, commands are stably sorted by layer
// and depth, and batches are submitted with DrawTriangles32. The floor
// reflection is a mirrored pass, sparkles are additive billboards, and a
// post-processing chain of Kage shaders adds bloom, vignette and grain.
//
// # Input
//
// The [Panel] is a screen-space [PointerTarget]. Drags, wheel and pinch the
// panel does not claim orbit the [Camera]. Scripts loaded with
// [LoadTestScript] inject the same pointer events and state updates.
//
// # Camera backdrop
//
// While useCamera is true the [CameraBridge] acquires a stream from a
// [MediaDevices] on a goroutine and the App draws its frames behind the
// transparent 3D layer. A failed request sets useCamera back to false.
//
// [Ebitengine]: https://ebitengine.org
package grandtree
