// Package cimxml implements the CIM-XML codec of DSP0201: encoding of
// operation request messages and decoding of operation response messages.
// The indication-export envelope is covered at the boundary (parse
// SIMPLEEXPREQ, emit SIMPLEEXPRSP) so a listener can share the codec.
package cimxml

// Protocol constants of the CIM-XML envelope.
const (
	CIMVersion      = "2.0"
	DTDVersion      = "2.0"
	ProtocolVersion = "1.0"
)

// Element names of the CIM-XML DTD used by this codec.
const (
	elemCIM                  = "CIM"
	elemMessage              = "MESSAGE"
	elemSimpleReq            = "SIMPLEREQ"
	elemSimpleRsp            = "SIMPLERSP"
	elemSimpleExpReq         = "SIMPLEEXPREQ"
	elemSimpleExpRsp         = "SIMPLEEXPRSP"
	elemIMethodCall          = "IMETHODCALL"
	elemIMethodResponse      = "IMETHODRESPONSE"
	elemMethodCall           = "METHODCALL"
	elemMethodResponse       = "METHODRESPONSE"
	elemExpMethodCall        = "EXPMETHODCALL"
	elemExpMethodResponse    = "EXPMETHODRESPONSE"
	elemIParamValue          = "IPARAMVALUE"
	elemParamValue           = "PARAMVALUE"
	elemExpParamValue        = "EXPPARAMVALUE"
	elemIReturnValue         = "IRETURNVALUE"
	elemReturnValue          = "RETURNVALUE"
	elemError                = "ERROR"
	elemNamespacePath        = "NAMESPACEPATH"
	elemLocalNamespacePath   = "LOCALNAMESPACEPATH"
	elemNamespace            = "NAMESPACE"
	elemHost                 = "HOST"
	elemClassPath            = "CLASSPATH"
	elemLocalClassPath       = "LOCALCLASSPATH"
	elemClassName            = "CLASSNAME"
	elemInstancePath         = "INSTANCEPATH"
	elemLocalInstancePath    = "LOCALINSTANCEPATH"
	elemInstanceName         = "INSTANCENAME"
	elemObjectPath           = "OBJECTPATH"
	elemKeybinding           = "KEYBINDING"
	elemKeyValue             = "KEYVALUE"
	elemValue                = "VALUE"
	elemValueArray           = "VALUE.ARRAY"
	elemValueReference       = "VALUE.REFERENCE"
	elemValueRefArray        = "VALUE.REFARRAY"
	elemValueNull            = "VALUE.NULL"
	elemValueObject          = "VALUE.OBJECT"
	elemValueNamedInstance   = "VALUE.NAMEDINSTANCE"
	elemValueInstanceWithPath = "VALUE.INSTANCEWITHPATH"
	elemValueObjectWithPath  = "VALUE.OBJECTWITHPATH"
	elemValueObjectWithLocalPath = "VALUE.OBJECTWITHLOCALPATH"
	elemInstance             = "INSTANCE"
	elemClass                = "CLASS"
	elemProperty             = "PROPERTY"
	elemPropertyArray        = "PROPERTY.ARRAY"
	elemPropertyReference    = "PROPERTY.REFERENCE"
	elemMethod               = "METHOD"
	elemParameter            = "PARAMETER"
	elemParameterReference   = "PARAMETER.REFERENCE"
	elemParameterArray       = "PARAMETER.ARRAY"
	elemParameterRefArray    = "PARAMETER.REFARRAY"
	elemQualifier            = "QUALIFIER"
	elemQualifierDeclaration = "QUALIFIER.DECLARATION"
	elemScope                = "SCOPE"
)

// Attribute names.
const (
	attrCIMVersion      = "CIMVERSION"
	attrDTDVersion      = "DTDVERSION"
	attrID              = "ID"
	attrProtocolVersion = "PROTOCOLVERSION"
	attrName            = "NAME"
	attrType            = "TYPE"
	attrParamType       = "PARAMTYPE"
	attrValueType       = "VALUETYPE"
	attrClassName       = "CLASSNAME"
	attrSuperClass      = "SUPERCLASS"
	attrClassOrigin     = "CLASSORIGIN"
	attrPropagated      = "PROPAGATED"
	attrArraySize       = "ARRAYSIZE"
	attrReferenceClass  = "REFERENCECLASS"
	attrEmbeddedObject  = "EmbeddedObject"
	attrCode            = "CODE"
	attrDescription     = "DESCRIPTION"
	attrOverridable     = "OVERRIDABLE"
	attrToSubclass      = "TOSUBCLASS"
	attrToInstance      = "TOINSTANCE"
	attrTranslatable    = "TRANSLATABLE"
	attrIsArray         = "ISARRAY"
	attrScopeClass       = "CLASS"
	attrScopeAssociation = "ASSOCIATION"
	attrScopeIndication  = "INDICATION"
	attrScopeProperty    = "PROPERTY"
	attrScopeReference   = "REFERENCE"
	attrScopeMethod      = "METHOD"
	attrScopeParameter   = "PARAMETER"
)
