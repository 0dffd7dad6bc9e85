package koji

import (
	"encoding/xml"
	"strings"
)

type methodCall struct {
	XMLName    xml.Name `xml:"methodCall"`
	MethodName string   `xml:"methodName"`
	Params     []param  `xml:"params>param"`
}

type methodResponse struct {
	XMLName xml.Name `xml:"methodResponse"`
	Params  []param  `xml:"params>param"`
	Fault   *fault   `xml:"fault"`
}

type fault struct {
	Value value `xml:"value"`
}

type param struct {
	Value value `xml:"value"`
}

type value struct {
	String  *string   `xml:"string,omitempty"`
	Int     *string   `xml:"int,omitempty"`
	I4      *string   `xml:"i4,omitempty"`
	I8      *string   `xml:"i8,omitempty"`
	Boolean *string   `xml:"boolean,omitempty"`
	Double  *string   `xml:"double,omitempty"`
	Array   []value   `xml:"array>data>value,omitempty"`
	Members []member  `xml:"struct>member,omitempty"`
	Nil     *struct{} `xml:"nil,omitempty"`
	// A value without a type element is a string
	Text string `xml:",chardata"`
}

type member struct {
	Name  string `xml:"name"`
	Value value  `xml:"value"`
}

func (v value) scalar() string {
	for _, s := range []*string{v.String, v.Int, v.I4, v.I8, v.Boolean, v.Double} {
		if s != nil {
			return *s
		}
	}
	if v.Nil != nil {
		return ""
	}
	return strings.TrimSpace(v.Text)
}

func (v value) members() map[string]string {
	m := make(map[string]string, len(v.Members))
	for _, mem := range v.Members {
		m[mem.Name] = mem.Value.scalar()
	}
	return m
}
