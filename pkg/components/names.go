package components

// Built-in component type names.
const (
	TypeAlert               = "Alert"
	TypeAccordion           = "Accordion"
	TypeActionButton        = "ActionButton"
	TypeAddress             = "AddressComponent"
	TypeAttachmentList      = "AttachmentList"
	TypeButton              = "Button"
	TypeCheckboxes          = "Checkboxes"
	TypeCustom              = "Custom"
	TypeDatepicker          = "Datepicker"
	TypeDropdown            = "Dropdown"
	TypeFileUpload          = "FileUpload"
	TypeFileUploadWithTag   = "FileUploadWithTag"
	TypeGroup               = "Group"
	TypeHeader              = "Header"
	TypeImage               = "Image"
	TypeInput               = "Input"
	TypeLink                = "Link"
	TypeNavigationBar       = "NavigationBar"
	TypeNavigationButtons   = "NavigationButtons"
	TypePanel               = "Panel"
	TypeParagraph           = "Paragraph"
	TypePrintButton         = "PrintButton"
	TypeRadioButtons        = "RadioButtons"
	TypeSummary             = "Summary"
	TypeTextArea            = "TextArea"
	TypeMultipleSelect      = "MultipleSelect"
	TypeInstanceInformation = "InstanceInformation"
)
