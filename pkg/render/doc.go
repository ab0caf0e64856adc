// Package render groups the packages that turn a graph into a picture.
//
// # Pipeline
//
// Drawing a project takes four steps, each in its own subpackage:
//
//   - [layout] assigns every node a position. Graphviz (fdp, neato or sfdp)
//     places new nodes; dragged nodes stay pinned.
//   - [camera] maps layout coordinates to the screen with a zoom factor
//     and a pan offset. It can also fit the view to the drawing.
//   - [styles] provides the four palettes (default, pastel, vibrant, dark)
//     that color nodes by type and relationships by kind.
//   - [nodelink] combines the three into a [nodelink.View] that answers
//     hit tests and renders the visible region to PNG, SVG or DOT.
//
// # Export
//
// PNG export renders at 300 DPI and covers exactly the region the camera
// shows, so an exported image matches what the workbench displays:
//
//	v := nodelink.NewView(g, l, &cam, styles.MustLookup(styles.Dark))
//	png, err := v.RenderPNG(ctx, nodelink.Options{})
//
// [layout]: github.com/matzehuels/infragraph/pkg/render/layout
// [camera]: github.com/matzehuels/infragraph/pkg/render/camera
// [styles]: github.com/matzehuels/infragraph/pkg/render/styles
// [nodelink]: github.com/matzehuels/infragraph/pkg/render/nodelink
package render
