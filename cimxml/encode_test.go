package cimxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slonegd/gowbem/cim"
)

func TestSplitNamespace(t *testing.T) {
	tests := []struct {
		name      string
		namespace string
		want      []string
	}{
		{
			name:      "plain",
			namespace: "root/cimv2",
			want:      []string{"root", "cimv2"},
		},
		{
			name:      "leading trailing and doubled slashes",
			namespace: "//root/mycim//",
			want:      []string{"root", "mycim"},
		},
		{
			name:      "single component",
			namespace: "interop",
			want:      []string{"interop"},
		},
		{
			name:      "empty",
			namespace: "",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitNamespace(tt.namespace))
			assert.Equal(t, JoinNamespace(tt.namespace), joinParts(tt.want))
		})
	}
}

func joinParts(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}

func TestEncodeMethodCall(t *testing.T) {
	key := cim.NewInstanceName("CIM_ComputerSystem")
	require.NoError(t, key.SetKeybinding("Name", cim.String("server1")))

	tests := []struct {
		name       string
		id         uint64
		methodName string
		namespace  string
		params     []Param
		want       string
	}{
		{
			name:       "EnumerateInstanceNames",
			id:         1001,
			methodName: "EnumerateInstanceNames",
			namespace:  "root/cimv2",
			params: []Param{
				ClassNameParam("ClassName", "CIM_ComputerSystem"),
			},
			want: `<CIM CIMVERSION="2.0" DTDVERSION="2.0">` +
				`<MESSAGE ID="1001" PROTOCOLVERSION="1.0">` +
				`<SIMPLEREQ>` +
				`<IMETHODCALL NAME="EnumerateInstanceNames">` +
				`<LOCALNAMESPACEPATH><NAMESPACE NAME="root"/><NAMESPACE NAME="cimv2"/></LOCALNAMESPACEPATH>` +
				`<IPARAMVALUE NAME="ClassName"><CLASSNAME NAME="CIM_ComputerSystem"/></IPARAMVALUE>` +
				`</IMETHODCALL>` +
				`</SIMPLEREQ>` +
				`</MESSAGE>` +
				`</CIM>`,
		},
		{
			name:       "namespace with leading trailing and doubled slashes",
			id:         1,
			methodName: "EnumerateClassNames",
			namespace:  "//root/mycim//",
			params:     nil,
			want: `<CIM CIMVERSION="2.0" DTDVERSION="2.0">` +
				`<MESSAGE ID="1" PROTOCOLVERSION="1.0">` +
				`<SIMPLEREQ>` +
				`<IMETHODCALL NAME="EnumerateClassNames">` +
				`<LOCALNAMESPACEPATH><NAMESPACE NAME="root"/><NAMESPACE NAME="mycim"/></LOCALNAMESPACEPATH>` +
				`</IMETHODCALL>` +
				`</SIMPLEREQ>` +
				`</MESSAGE>` +
				`</CIM>`,
		},
		{
			name:       "GetInstance with flags",
			id:         42,
			methodName: "GetInstance",
			namespace:  "root/cimv2",
			params: []Param{
				InstanceNameParam("InstanceName", key),
				BoolParam("LocalOnly", false),
				StringArrayParam("PropertyList", []string{"Name", "Status"}),
			},
			want: `<CIM CIMVERSION="2.0" DTDVERSION="2.0">` +
				`<MESSAGE ID="42" PROTOCOLVERSION="1.0">` +
				`<SIMPLEREQ>` +
				`<IMETHODCALL NAME="GetInstance">` +
				`<LOCALNAMESPACEPATH><NAMESPACE NAME="root"/><NAMESPACE NAME="cimv2"/></LOCALNAMESPACEPATH>` +
				`<IPARAMVALUE NAME="InstanceName">` +
				`<INSTANCENAME CLASSNAME="CIM_ComputerSystem">` +
				`<KEYBINDING NAME="Name"><KEYVALUE VALUETYPE="string" TYPE="string">server1</KEYVALUE></KEYBINDING>` +
				`</INSTANCENAME>` +
				`</IPARAMVALUE>` +
				`<IPARAMVALUE NAME="LocalOnly"><VALUE>FALSE</VALUE></IPARAMVALUE>` +
				`<IPARAMVALUE NAME="PropertyList"><VALUE.ARRAY><VALUE>Name</VALUE><VALUE>Status</VALUE></VALUE.ARRAY></IPARAMVALUE>` +
				`</IMETHODCALL>` +
				`</SIMPLEREQ>` +
				`</MESSAGE>` +
				`</CIM>`,
		},
		{
			name:       "OpenEnumerateInstances with counters",
			id:         7,
			methodName: "OpenEnumerateInstances",
			namespace:  "root/cimv2",
			params: []Param{
				ClassNameParam("ClassName", "CIM_Fan"),
				Uint32Param("MaxObjectCount", 100),
				Uint32Param("OperationTimeout", 40),
			},
			want: `<CIM CIMVERSION="2.0" DTDVERSION="2.0">` +
				`<MESSAGE ID="7" PROTOCOLVERSION="1.0">` +
				`<SIMPLEREQ>` +
				`<IMETHODCALL NAME="OpenEnumerateInstances">` +
				`<LOCALNAMESPACEPATH><NAMESPACE NAME="root"/><NAMESPACE NAME="cimv2"/></LOCALNAMESPACEPATH>` +
				`<IPARAMVALUE NAME="ClassName"><CLASSNAME NAME="CIM_Fan"/></IPARAMVALUE>` +
				`<IPARAMVALUE NAME="MaxObjectCount"><VALUE>100</VALUE></IPARAMVALUE>` +
				`<IPARAMVALUE NAME="OperationTimeout"><VALUE>40</VALUE></IPARAMVALUE>` +
				`</IMETHODCALL>` +
				`</SIMPLEREQ>` +
				`</MESSAGE>` +
				`</CIM>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeMethodCall(tt.id, tt.methodName, tt.namespace, tt.params)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestEncodeMethodCallEscaping(t *testing.T) {
	got := EncodeMethodCall(3, "ExecQuery", "root/cimv2", []Param{
		StringParam("Query", `SELECT * FROM CIM_Fan WHERE Name < "a&b"`),
		StringParam("QueryLanguage", "WQL"),
	})
	assert.Contains(t, string(got),
		`<IPARAMVALUE NAME="Query"><VALUE>SELECT * FROM CIM_Fan WHERE Name &lt; &#34;a&amp;b&#34;</VALUE></IPARAMVALUE>`)
}

func TestEncodeExtrinsicCall(t *testing.T) {
	target := cim.NewInstanceName("CIM_Service")
	require.NoError(t, target.SetKeybinding("Name", cim.String("sshd")))

	t.Run("instance path target", func(t *testing.T) {
		got := EncodeExtrinsicCall(5, "StopService", "root/cimv2", target, "", []Param{
			MethodParam("Timeout", cim.Uint32(30)),
		})
		want := `<CIM CIMVERSION="2.0" DTDVERSION="2.0">` +
			`<MESSAGE ID="5" PROTOCOLVERSION="1.0">` +
			`<SIMPLEREQ>` +
			`<METHODCALL NAME="StopService">` +
			`<LOCALINSTANCEPATH>` +
			`<LOCALNAMESPACEPATH><NAMESPACE NAME="root"/><NAMESPACE NAME="cimv2"/></LOCALNAMESPACEPATH>` +
			`<INSTANCENAME CLASSNAME="CIM_Service">` +
			`<KEYBINDING NAME="Name"><KEYVALUE VALUETYPE="string" TYPE="string">sshd</KEYVALUE></KEYBINDING>` +
			`</INSTANCENAME>` +
			`</LOCALINSTANCEPATH>` +
			`<PARAMVALUE NAME="Timeout" PARAMTYPE="uint32"><VALUE>30</VALUE></PARAMVALUE>` +
			`</METHODCALL>` +
			`</SIMPLEREQ>` +
			`</MESSAGE>` +
			`</CIM>`
		assert.Equal(t, want, string(got))
	})

	t.Run("class path target", func(t *testing.T) {
		got := EncodeExtrinsicCall(6, "StaticMethod", "root/cimv2", nil, "CIM_Service", nil)
		want := `<CIM CIMVERSION="2.0" DTDVERSION="2.0">` +
			`<MESSAGE ID="6" PROTOCOLVERSION="1.0">` +
			`<SIMPLEREQ>` +
			`<METHODCALL NAME="StaticMethod">` +
			`<LOCALCLASSPATH>` +
			`<LOCALNAMESPACEPATH><NAMESPACE NAME="root"/><NAMESPACE NAME="cimv2"/></LOCALNAMESPACEPATH>` +
			`<CLASSNAME NAME="CIM_Service"/>` +
			`</LOCALCLASSPATH>` +
			`</METHODCALL>` +
			`</SIMPLEREQ>` +
			`</MESSAGE>` +
			`</CIM>`
		assert.Equal(t, want, string(got))
	})
}

func TestEncodeExportResponse(t *testing.T) {
	got := EncodeExportResponse("87", "ExportIndication")
	want := `<CIM CIMVERSION="2.0" DTDVERSION="2.0">` +
		`<MESSAGE ID="87" PROTOCOLVERSION="1.0">` +
		`<SIMPLEEXPRSP>` +
		`<EXPMETHODRESPONSE NAME="ExportIndication">` +
		`<IRETURNVALUE/>` +
		`</EXPMETHODRESPONSE>` +
		`</SIMPLEEXPRSP>` +
		`</MESSAGE>` +
		`</CIM>`
	assert.Equal(t, want, string(got))
}

func TestSerializeInstance(t *testing.T) {
	inst := cim.NewInstance("CIM_Fan")
	require.NoError(t, inst.SetProperty(cim.NewProperty("DeviceID", cim.String("fan0"))))
	speed, err := cim.Array(cim.TypeUint32, []cim.Value{cim.Uint32(1200), cim.Uint32(2400)})
	require.NoError(t, err)
	require.NoError(t, inst.SetProperty(cim.NewProperty("SupportedSpeeds", speed)))
	require.NoError(t, inst.SetProperty(cim.NewProperty("Active", cim.Bool(true))))

	want := `<INSTANCE CLASSNAME="CIM_Fan">` +
		`<PROPERTY NAME="DeviceID" TYPE="string"><VALUE>fan0</VALUE></PROPERTY>` +
		`<PROPERTY.ARRAY NAME="SupportedSpeeds" TYPE="uint32">` +
		`<VALUE.ARRAY><VALUE>1200</VALUE><VALUE>2400</VALUE></VALUE.ARRAY>` +
		`</PROPERTY.ARRAY>` +
		`<PROPERTY NAME="Active" TYPE="boolean"><VALUE>TRUE</VALUE></PROPERTY>` +
		`</INSTANCE>`
	assert.Equal(t, want, string(SerializeInstance(inst)))
}

func TestSerializeInstanceNameReferenceKey(t *testing.T) {
	inner := cim.NewInstanceName("CIM_System")
	require.NoError(t, inner.SetKeybinding("Name", cim.String("sys1")))
	inner.Namespace = "root/cimv2"

	outer := cim.NewInstanceName("CIM_InstalledOS")
	require.NoError(t, outer.SetKeybinding("Antecedent", cim.Reference(inner)))

	want := `<INSTANCENAME CLASSNAME="CIM_InstalledOS">` +
		`<KEYBINDING NAME="Antecedent">` +
		`<VALUE.REFERENCE>` +
		`<LOCALINSTANCEPATH>` +
		`<LOCALNAMESPACEPATH><NAMESPACE NAME="root"/><NAMESPACE NAME="cimv2"/></LOCALNAMESPACEPATH>` +
		`<INSTANCENAME CLASSNAME="CIM_System">` +
		`<KEYBINDING NAME="Name"><KEYVALUE VALUETYPE="string" TYPE="string">sys1</KEYVALUE></KEYBINDING>` +
		`</INSTANCENAME>` +
		`</LOCALINSTANCEPATH>` +
		`</VALUE.REFERENCE>` +
		`</KEYBINDING>` +
		`</INSTANCENAME>`
	assert.Equal(t, want, string(SerializeInstanceName(outer)))
}

func TestSerializeQualifierDeclaration(t *testing.T) {
	decl := cim.NewQualifierDeclaration("Key", cim.TypeBoolean, cim.Bool(false),
		cim.ScopeProperty|cim.ScopeReference)
	decl.Overridable = false

	want := `<QUALIFIER.DECLARATION NAME="Key" TYPE="boolean" OVERRIDABLE="false">` +
		`<SCOPE PROPERTY="true" REFERENCE="true"/>` +
		`<VALUE>FALSE</VALUE>` +
		`</QUALIFIER.DECLARATION>`
	assert.Equal(t, want, string(SerializeQualifierDeclaration(decl)))
}

func TestEmbeddedInstanceValue(t *testing.T) {
	embedded := cim.NewInstance("CIM_AlertIndication")
	require.NoError(t, embedded.SetProperty(cim.NewProperty("AlertType", cim.Uint16(2))))

	inst := cim.NewInstance("CIM_IndicationCarrier")
	p := cim.NewProperty("SourceInstance", cim.EmbeddedInstance(embedded))
	p.EmbeddedObject = cim.EmbeddedAsInstance
	require.NoError(t, inst.SetProperty(p))

	want := `<INSTANCE CLASSNAME="CIM_IndicationCarrier">` +
		`<PROPERTY NAME="SourceInstance" TYPE="string" EmbeddedObject="instance">` +
		`<VALUE>&lt;INSTANCE CLASSNAME=&#34;CIM_AlertIndication&#34;&gt;` +
		`&lt;PROPERTY NAME=&#34;AlertType&#34; TYPE=&#34;uint16&#34;&gt;&lt;VALUE&gt;2&lt;/VALUE&gt;&lt;/PROPERTY&gt;` +
		`&lt;/INSTANCE&gt;</VALUE>` +
		`</PROPERTY>` +
		`</INSTANCE>`
	assert.Equal(t, want, string(SerializeInstance(inst)))
}
