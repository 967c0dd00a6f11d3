package schema

// FunctionBuilder accumulates a function description. Call Build to produce
// the validated, immutable FunctionSchema.
type FunctionBuilder struct {
	fn FunctionSchema
}

func NewFunction(name string) *FunctionBuilder {
	return &FunctionBuilder{fn: FunctionSchema{Name: name}}
}

func (b *FunctionBuilder) Describe(description string) *FunctionBuilder {
	b.fn.Description = description
	return b
}

// Arg adds a required argument.
func (b *FunctionBuilder) Arg(name string, t Type, description string) *FunctionBuilder {
	b.fn.Arguments = append(b.fn.Arguments, Field{Name: name, Description: description, Type: t, Required: true})
	return b
}

func (b *FunctionBuilder) OptionalArg(name string, t Type, description string) *FunctionBuilder {
	b.fn.Arguments = append(b.fn.Arguments, Field{Name: name, Description: description, Type: t})
	return b
}

func (b *FunctionBuilder) Returns(t Type) *FunctionBuilder {
	b.fn.Returns = t
	return b
}

// Build validates the accumulated schema. The builder may keep being used;
// the returned value shares no memory with it.
func (b *FunctionBuilder) Build() (FunctionSchema, error) {
	fn := b.fn.Clone()
	if err := fn.Validate(); err != nil {
		return FunctionSchema{}, err
	}
	return fn, nil
}

// MustBuild is Build for statically declared schemas; it panics on error.
func (b *FunctionBuilder) MustBuild() FunctionSchema {
	fn, err := b.Build()
	if err != nil {
		panic(err)
	}
	return fn
}

type ObjectBuilder struct {
	obj ObjectSchema
}

func NewObject(name string) *ObjectBuilder {
	return &ObjectBuilder{obj: ObjectSchema{Name: name}}
}

func (b *ObjectBuilder) Describe(description string) *ObjectBuilder {
	b.obj.Description = description
	return b
}

func (b *ObjectBuilder) Field(name string, t Type, description string) *ObjectBuilder {
	b.obj.Fields = append(b.obj.Fields, Field{Name: name, Description: description, Type: t, Required: true})
	return b
}

func (b *ObjectBuilder) OptionalField(name string, t Type, description string) *ObjectBuilder {
	b.obj.Fields = append(b.obj.Fields, Field{Name: name, Description: description, Type: t})
	return b
}

func (b *ObjectBuilder) Persistable() *ObjectBuilder {
	b.obj.IsPersistable = true
	return b
}

func (b *ObjectBuilder) Build() (ObjectSchema, error) {
	obj := b.obj.Clone()
	if err := obj.Validate(); err != nil {
		return ObjectSchema{}, err
	}
	return obj, nil
}

func (b *ObjectBuilder) MustBuild() ObjectSchema {
	obj, err := b.Build()
	if err != nil {
		panic(err)
	}
	return obj
}
