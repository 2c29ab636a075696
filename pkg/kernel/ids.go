package kernel

type ApplicantID string

func NewApplicantID(id string) ApplicantID { return ApplicantID(id) }
func (a ApplicantID) String() string       { return string(a) }
func (a ApplicantID) IsEmpty() bool        { return string(a) == "" }

type RenderJobID string

func NewRenderJobID(id string) RenderJobID { return RenderJobID(id) }
func (r RenderJobID) String() string       { return string(r) }
func (r RenderJobID) IsEmpty() bool        { return string(r) == "" }
