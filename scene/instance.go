package scene

import "github.com/go-gl/mathgl/mgl32"

// ObjectInstance is one placement of an Object. The raw vectors are what
// gets persisted; the matrices are kept in sync by the Update methods.
type ObjectInstance struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3 // degrees
	Scale       mgl32.Vec3

	TranslationMatrix mgl32.Mat4
	ScaleMatrix       mgl32.Mat4
	RotationQuat      mgl32.Quat

	VertexShader   string
	FragmentShader string
	Shader         *Shader
}

func NewObjectInstance(o *Object) *ObjectInstance {
	inst := &ObjectInstance{
		Scale:             mgl32.Vec3{1, 1, 1},
		TranslationMatrix: mgl32.Ident4(),
		ScaleMatrix:       mgl32.Ident4(),
		RotationQuat:      mgl32.QuatIdent(),
	}
	if o != nil {
		inst.VertexShader = o.VertexShader
		inst.FragmentShader = o.FragmentShader
	}
	return inst
}

func (inst *ObjectInstance) UpdateTranslation() {
	inst.TranslationMatrix = mgl32.Translate3D(inst.Translation[0], inst.Translation[1], inst.Translation[2])
}

func (inst *ObjectInstance) UpdateScale() {
	inst.ScaleMatrix = mgl32.Scale3D(inst.Scale[0], inst.Scale[1], inst.Scale[2])
}

// UpdateRotation composes Rz*Ry*Rx from the degree angles.
func (inst *ObjectInstance) UpdateRotation() {
	inst.RotationQuat = mgl32.QuatRotate(mgl32.DegToRad(inst.Rotation[2]), mgl32.Vec3{0, 0, 1}).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(inst.Rotation[1]), mgl32.Vec3{0, 1, 0})).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(inst.Rotation[0]), mgl32.Vec3{1, 0, 0}))
}

func (inst *ObjectInstance) SetTranslation(v mgl32.Vec3) {
	inst.Translation = v
	inst.UpdateTranslation()
}

func (inst *ObjectInstance) SetRotation(v mgl32.Vec3) {
	inst.Rotation = v
	inst.UpdateRotation()
}

func (inst *ObjectInstance) SetScale(v mgl32.Vec3) {
	inst.Scale = v
	inst.UpdateScale()
}

func (inst *ObjectInstance) Model() mgl32.Mat4 {
	return inst.TranslationMatrix.Mul4(inst.RotationQuat.Mat4()).Mul4(inst.ScaleMatrix)
}

func (inst *ObjectInstance) ShaderKey() ShaderKey {
	return MakeShaderKey(inst.VertexShader, inst.FragmentShader)
}
