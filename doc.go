// Package gravit is the document core of a retained-mode vector graphics
// editor.
//
// Gravit provides the node tree with batched property notifications, shape
// styling through inline, shared and linked styles, an effects pipeline
// composited through offscreen canvases, dirty-region repainting of views,
// and undoable editing transactions. Rendering is CPU-side; an [ebiten]
// window can present a view with [Run].
//
// # Quick start
//
//	scene := gravit.NewScene()
//	layer := scene.AddLayer("Layer 1")
//
//	rect := gravit.NewRectangle(20, 20, 120, 80)
//	style := gravit.NewInlineStyle()
//	style.AppendChild(gravit.NewFill(gravit.SolidPattern{Color: gravit.Color{R: 1, A: 1}}))
//	rect.StyleSet().AppendChild(style)
//	layer.AppendChild(rect)
//
//	img := gravit.RenderImage(scene, gravit.RenderOptions{Scale: 2})
//	gravit.WritePNG("out.png", img)
//
// # Properties and notifications
//
// Every node holds a property bag validated against its class. A call to
// [Node.SetProperties] fires exactly one [BeforePropertiesChange] and one
// [AfterPropertiesChange] for the whole batch. [Node.BeginChanges] and
// [Node.EndChanges] widen that to any number of calls. Notifications are
// delivered through the [Scene], which embeds an [EventTarget].
//
// # Styles
//
// A shape paints its style set in order. Shared styles live in the scene's
// style collection; linked styles reference one by id and are resynced
// synchronously whenever the shared style or its attributes change. Use
// [Scene.DisconnectStyle] to remove a shared style without leaving dangling
// references.
//
// # Painting
//
// A [View] keeps one canvas per layer and a dirty list. Scene invalidations
// are mapped to view space and repainted on the next frame requested from
// its [FrameScheduler]; at most one frame is pending per layer. Painting runs
// through a [PaintContext], whose canvas stack is balanced on every exit
// path, panics included.
//
// # Undo
//
// An [Editor] journals scene changes made inside a transaction and records
// them as one [Action] on commit. [Editor.Transact] rolls the changes back
// when the function fails.
//
// Gravit is single-threaded. All calls must come from the same goroutine.
//
// [ebiten]: https://ebitengine.org
package gravit
