package domain

type Location struct {
	ID          string `json:"id" yaml:"id"`
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description,omitempty" yaml:"description"`
	Disposal    bool   `json:"disposal,omitempty" yaml:"disposal"`
}
