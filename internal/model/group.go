package model

type Group struct {
	Name string
	Type string // always "select" here

	Members []string // proxy names plus DIRECT / REJECT
}
