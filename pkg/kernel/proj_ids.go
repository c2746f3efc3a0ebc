package kernel

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (r JobID) String() string { return string(r) }
func (r JobID) IsEmpty() bool  { return string(r) == "" }

type CandidateID string

func NewCandidateID(id string) CandidateID { return CandidateID(id) }
func (r CandidateID) String() string       { return string(r) }
func (r CandidateID) IsEmpty() bool        { return string(r) == "" }

type HiringProcessID string

func NewHiringProcessID(id string) HiringProcessID { return HiringProcessID(id) }
func (r HiringProcessID) String() string           { return string(r) }
func (r HiringProcessID) IsEmpty() bool            { return string(r) == "" }

type ApplicationFormID string

func NewApplicationFormID(id string) ApplicationFormID { return ApplicationFormID(id) }
func (r ApplicationFormID) String() string             { return string(r) }
func (r ApplicationFormID) IsEmpty() bool              { return string(r) == "" }
