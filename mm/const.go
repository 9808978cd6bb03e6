package mm

import "github.com/godbus/dbus/v5"

// Bus name and root object of the ModemManager service
const (
	BusName                   = "org.freedesktop.ModemManager1"
	RootPath  dbus.ObjectPath = "/org/freedesktop/ModemManager1"
	EmptyPath dbus.ObjectPath = "/"
)

// ModemManager1 interfaces
const (
	ManagerInterface     = "org.freedesktop.ModemManager1"
	ModemInterface       = "org.freedesktop.ModemManager1.Modem"
	SimpleInterface      = "org.freedesktop.ModemManager1.Modem.Simple"
	SimInterface         = "org.freedesktop.ModemManager1.Sim"
	BearerInterface      = "org.freedesktop.ModemManager1.Bearer"
	propertiesInterface  = "org.freedesktop.DBus.Properties"
	objectManagerIface   = "org.freedesktop.DBus.ObjectManager"
	peerInterface        = "org.freedesktop.DBus.Peer"
	propertiesGet        = propertiesInterface + ".Get"
	propertiesGetAll     = propertiesInterface + ".GetAll"
	getManagedObjects    = objectManagerIface + ".GetManagedObjects"
	peerPing             = peerInterface + ".Ping"
	dbusErrorPrefix      = "org.freedesktop.DBus.Error."
	modemManagerErrorPfx = "org.freedesktop.ModemManager1.Error."
)

// ModemManager1 properties
const (
	ManagerPropertyVersion = "Version"

	ModemPropertyManufacturer         = "Manufacturer"
	ModemPropertyModel                = "Model"
	ModemPropertyRevision             = "Revision"
	ModemPropertySignalQuality        = "SignalQuality"
	ModemPropertyAccessTechnologies   = "AccessTechnologies"
	ModemPropertyCarrierConfiguration = "CarrierConfiguration"
	ModemPropertyState                = "State"
	ModemPropertyEquipmentIdentifier  = "EquipmentIdentifier"
	ModemPropertyDrivers              = "Drivers"
	ModemPropertySim                  = "Sim"
	ModemPropertyBearers              = "Bearers"

	SimPropertySimIdentifier      = "SimIdentifier"
	SimPropertyImsi               = "Imsi"
	SimPropertyOperatorIdentifier = "OperatorIdentifier"
	SimPropertyOperatorName       = "OperatorName"

	BearerPropertyConnected = "Connected"
	BearerPropertyInterface = "Interface"
	BearerPropertyIp4Config = "Ip4Config"
)

// ModemManager1 methods
const (
	ManagerScanDevices = "ScanDevices"

	ModemReset        = "Reset"
	ModemEnable       = "Enable"
	ModemCreateBearer = "CreateBearer"
	ModemDeleteBearer = "DeleteBearer"

	SimpleConnect    = "Connect"
	SimpleDisconnect = "Disconnect"
	SimpleGetStatus  = "GetStatus"

	SimSendPin = "SendPin"

	BearerConnect    = "Connect"
	BearerDisconnect = "Disconnect"
)
