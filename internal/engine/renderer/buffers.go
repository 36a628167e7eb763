package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/inkreveal/internal/engine/geometry"
	"github.com/Faultbox/inkreveal/internal/engine/texture"
)

// Attribute locations shared by every program.
const (
	attrPosition   = 0
	attrNormal     = 1
	attrUV         = 2
	attrSkinIndex  = 3
	attrSkinWeight = 4
)

// vertexArray owns a VAO and its buffers. It is attached to the geometry it
// was uploaded from and freed when that geometry is disposed.
type vertexArray struct {
	vao     uint32
	buffers []uint32
	mode    uint32
	count   int32
	indexed bool
}

// Release deletes the GL objects.
func (va *vertexArray) Release() error {
	if len(va.buffers) > 0 {
		gl.DeleteBuffers(int32(len(va.buffers)), &va.buffers[0])
		va.buffers = nil
	}
	if va.vao != 0 {
		gl.DeleteVertexArrays(1, &va.vao)
		va.vao = 0
	}
	return nil
}

func (va *vertexArray) draw() {
	if va.vao == 0 || va.count == 0 {
		return
	}
	gl.BindVertexArray(va.vao)
	if va.indexed {
		gl.DrawElementsWithOffset(va.mode, va.count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(va.mode, 0, va.count)
	}
	gl.BindVertexArray(0)
}

func (va *vertexArray) floats(loc uint32, size int32, data []float32) {
	if len(data) == 0 {
		return
	}
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(loc, size, gl.FLOAT, false, size*4, 0)
	gl.EnableVertexAttribArray(loc)
	va.buffers = append(va.buffers, vbo)
}

func (va *vertexArray) joints(data []uint16) {
	if len(data) == 0 {
		return
	}
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*2, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	gl.VertexAttribIPointerWithOffset(attrSkinIndex, geometry.Influences, gl.UNSIGNED_SHORT, geometry.Influences*2, 0)
	gl.EnableVertexAttribArray(attrSkinIndex)
	va.buffers = append(va.buffers, vbo)
}

// meshBuffersFor returns the VAO of m, uploading it on first use.
func meshBuffersFor(m *geometry.MeshGeometry) *vertexArray {
	if va, ok := m.GPU().(*vertexArray); ok {
		return va
	}

	va := &vertexArray{mode: gl.TRIANGLES}
	gl.GenVertexArrays(1, &va.vao)
	gl.BindVertexArray(va.vao)

	va.floats(attrPosition, 3, m.Positions)
	va.floats(attrNormal, 3, m.Normals)
	va.floats(attrUV, 2, m.UVs)
	va.joints(m.SkinIndices)
	va.floats(attrSkinWeight, geometry.Influences, m.SkinWeights)

	if m.Indexed() {
		var ebo uint32
		gl.GenBuffers(1, &ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)
		va.buffers = append(va.buffers, ebo)
		va.indexed = true
		va.count = int32(len(m.Indices))
	} else {
		va.count = int32(m.VertexCount())
	}

	gl.BindVertexArray(0)
	m.Attach(va)
	return va
}

// lineBuffersFor returns the VAO of l, uploading it on first use.
func lineBuffersFor(l *geometry.LineGeometry) *vertexArray {
	if va, ok := l.GPU().(*vertexArray); ok {
		return va
	}

	va := &vertexArray{mode: gl.LINES, count: int32(l.SegmentCount() * 2)}
	gl.GenVertexArrays(1, &va.vao)
	gl.BindVertexArray(va.vao)

	va.floats(attrPosition, 3, l.Positions)
	va.joints(l.SkinIndices)
	va.floats(attrSkinWeight, geometry.Influences, l.SkinWeights)

	gl.BindVertexArray(0)
	l.Attach(va)
	return va
}

type textureObject struct{ id uint32 }

func (t *textureObject) Release() error {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
	return nil
}

// textureID returns the GL texture of t, uploading it on first use.
func textureID(t *texture.Texture) uint32 {
	if obj, ok := t.GPU().(*textureObject); ok {
		return obj.id
	}

	img := t.Image
	obj := &textureObject{}
	gl.GenTextures(1, &obj.id)
	gl.BindTexture(gl.TEXTURE_2D, obj.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	t.Attach(obj)
	return obj.id
}
