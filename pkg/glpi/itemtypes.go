package glpi

import (
	"net/url"
	"strings"
)

// ItemType names a kind of GLPI resource, e.g. Computer or Ticket.
type ItemType string

// Item types known to this client. The server accepts others; see IsKnown.
const (
	ItemTypeComputer          ItemType = "Computer"
	ItemTypeMonitor           ItemType = "Monitor"
	ItemTypeNetworkEquipment  ItemType = "NetworkEquipment"
	ItemTypePeripheral        ItemType = "Peripheral"
	ItemTypePhone             ItemType = "Phone"
	ItemTypePrinter           ItemType = "Printer"
	ItemTypeSoftware          ItemType = "Software"
	ItemTypeSoftwareLicense   ItemType = "SoftwareLicense"
	ItemTypeSoftwareVersion   ItemType = "SoftwareVersion"
	ItemTypeCartridgeItem     ItemType = "CartridgeItem"
	ItemTypeConsumableItem    ItemType = "ConsumableItem"
	ItemTypeRack              ItemType = "Rack"
	ItemTypeEnclosure         ItemType = "Enclosure"
	ItemTypePDU               ItemType = "PDU"
	ItemTypeTicket            ItemType = "Ticket"
	ItemTypeProblem           ItemType = "Problem"
	ItemTypeChange            ItemType = "Change"
	ItemTypeTicketFollowup    ItemType = "ITILFollowup"
	ItemTypeTicketTask        ItemType = "TicketTask"
	ItemTypeProject           ItemType = "Project"
	ItemTypeProjectTask       ItemType = "ProjectTask"
	ItemTypeUser              ItemType = "User"
	ItemTypeGroup             ItemType = "Group"
	ItemTypeEntity            ItemType = "Entity"
	ItemTypeProfile           ItemType = "Profile"
	ItemTypeLocation          ItemType = "Location"
	ItemTypeState             ItemType = "State"
	ItemTypeManufacturer      ItemType = "Manufacturer"
	ItemTypeSupplier          ItemType = "Supplier"
	ItemTypeContact           ItemType = "Contact"
	ItemTypeContract          ItemType = "Contract"
	ItemTypeDocument          ItemType = "Document"
	ItemTypeDocumentItem      ItemType = "Document_Item"
	ItemTypeKnowbaseItem      ItemType = "KnowbaseItem"
	ItemTypeNetworkPort       ItemType = "NetworkPort"
	ItemTypeOperatingSystem   ItemType = "OperatingSystem"
	ItemTypeComputerModel     ItemType = "ComputerModel"
	ItemTypeComputerType      ItemType = "ComputerType"
	ItemTypeDeviceProcessor   ItemType = "DeviceProcessor"
	ItemTypeDeviceMemory      ItemType = "DeviceMemory"
	ItemTypeDeviceHardDrive   ItemType = "DeviceHardDrive"
	ItemTypeCertificate       ItemType = "Certificate"
	ItemTypeBudget            ItemType = "Budget"
	ItemTypeReminder          ItemType = "Reminder"
	ItemTypeRSSFeed           ItemType = "RSSFeed"
	ItemTypeNotification      ItemType = "Notification"
	ItemTypeCalendar          ItemType = "Calendar"
	ItemTypeLog               ItemType = "Log"
	ItemTypeComputerVirtualVM ItemType = "ComputerVirtualMachine"
)

var knownItemTypes = map[ItemType]struct{}{
	ItemTypeComputer: {}, ItemTypeMonitor: {}, ItemTypeNetworkEquipment: {},
	ItemTypePeripheral: {}, ItemTypePhone: {}, ItemTypePrinter: {},
	ItemTypeSoftware: {}, ItemTypeSoftwareLicense: {}, ItemTypeSoftwareVersion: {},
	ItemTypeCartridgeItem: {}, ItemTypeConsumableItem: {}, ItemTypeRack: {},
	ItemTypeEnclosure: {}, ItemTypePDU: {}, ItemTypeTicket: {},
	ItemTypeProblem: {}, ItemTypeChange: {}, ItemTypeTicketFollowup: {},
	ItemTypeTicketTask: {}, ItemTypeProject: {}, ItemTypeProjectTask: {},
	ItemTypeUser: {}, ItemTypeGroup: {}, ItemTypeEntity: {},
	ItemTypeProfile: {}, ItemTypeLocation: {}, ItemTypeState: {},
	ItemTypeManufacturer: {}, ItemTypeSupplier: {}, ItemTypeContact: {},
	ItemTypeContract: {}, ItemTypeDocument: {}, ItemTypeDocumentItem: {},
	ItemTypeKnowbaseItem: {}, ItemTypeNetworkPort: {}, ItemTypeOperatingSystem: {},
	ItemTypeComputerModel: {}, ItemTypeComputerType: {}, ItemTypeDeviceProcessor: {},
	ItemTypeDeviceMemory: {}, ItemTypeDeviceHardDrive: {}, ItemTypeCertificate: {},
	ItemTypeBudget: {}, ItemTypeReminder: {}, ItemTypeRSSFeed: {},
	ItemTypeNotification: {}, ItemTypeCalendar: {}, ItemTypeLog: {},
	ItemTypeComputerVirtualVM: {},
}

// String implements fmt.Stringer.
func (t ItemType) String() string {
	return string(t)
}

// IsKnown reports whether t is one of the constants declared in this package.
// The client never rejects unknown item types; plugins add their own.
func (t ItemType) IsKnown() bool {
	_, ok := knownItemTypes[t]

	return ok
}

// KnownItemTypes returns the declared item types in no particular order.
func KnownItemTypes() []ItemType {
	types := make([]ItemType, 0, len(knownItemTypes))
	for itemType := range knownItemTypes {
		types = append(types, itemType)
	}

	return types
}

// ResourceRef points at an item type, and optionally one item of it.
type ResourceRef struct {
	ItemType ItemType
	ID       string
}

// Path returns the escaped API path for the reference.
func (r ResourceRef) Path() string {
	if r.ID == "" {
		return "/" + url.PathEscape(string(r.ItemType))
	}

	return "/" + url.PathEscape(string(r.ItemType)) + "/" + url.PathEscape(r.ID)
}

// Sub returns the path of a sub item collection below r.
func (r ResourceRef) Sub(subType ItemType) string {
	return strings.TrimSuffix(r.Path(), "/") + "/" + url.PathEscape(string(subType))
}
