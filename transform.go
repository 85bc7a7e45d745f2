package grandtree

import "github.com/go-gl/mathgl/mgl64"

// computeLocalTransform computes the local matrix from the node's transform
// properties.
//
// Composition order:
//
//	Scale -> Rotate -> Translate(Position)
func computeLocalTransform(n *Node) mgl64.Mat4 {
	t := mgl64.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	r := n.Rotation.Mat4()
	s := mgl64.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// normalMatrixOf returns the inverse transpose of m's upper 3x3, which maps
// object-space normals to world space under non-uniform scale.
func normalMatrixOf(m mgl64.Mat4) mgl64.Mat3 {
	m3 := m.Mat3()
	if d := m3.Det(); d > -1e-12 && d < 1e-12 {
		return mgl64.Ident3()
	}
	return m3.Inv().Transpose()
}

// updateWorldTransform recomputes a node's worldTransform and worldAlpha.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parentTransform mgl64.Mat4, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = parentTransform.Mul4(computeLocalTransform(n))
		n.normalMatrix = normalMatrixOf(n.worldTransform)
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, n.worldAlpha, recompute)
	}
}

// --- Transform property setters ---

// SetPosition sets the node's local position and marks it dirty.
func (n *Node) SetPosition(x, y, z float64) {
	n.Position = mgl64.Vec3{x, y, z}
	n.transformDirty = true
}

// SetRotation sets the node's local rotation and marks it dirty.
func (n *Node) SetRotation(q mgl64.Quat) {
	n.Rotation = q
	n.transformDirty = true
}

// SetRotationY sets the node's rotation to angle radians about +Y.
func (n *Node) SetRotationY(angle float64) {
	n.SetRotation(mgl64.QuatRotate(angle, mgl64.Vec3{0, 1, 0}))
}

// SetScale sets a uniform scale and marks the node dirty.
func (n *Node) SetScale(s float64) {
	n.Scale = mgl64.Vec3{s, s, s}
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// --- Coordinate conversion ---

// WorldTransform returns the node's world matrix as of the last update.
func (n *Node) WorldTransform() mgl64.Mat4 {
	return n.worldTransform
}

// WorldPosition returns the node's origin in world space.
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.worldTransform.Col(3).Vec3()
}

// LocalToWorld converts a local-space point to world space.
func (n *Node) LocalToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, n.worldTransform)
}

// WorldToLocal converts a world-space point to this node's local space.
func (n *Node) WorldToLocal(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, n.worldTransform.Inv())
}

// instanceTransform returns the local matrix for one instance.
func instanceTransform(in *Instance) mgl64.Mat4 {
	t := mgl64.Translate3D(in.Position[0], in.Position[1], in.Position[2])
	s := in.Scale
	if s == 0 {
		s = 1
	}
	q := in.Orientation
	if q == (mgl64.Quat{}) {
		q = mgl64.QuatIdent()
	}
	return t.Mul4(q.Mat4()).Mul4(mgl64.Scale3D(s, s, s))
}
