package topics

var (
	disabledEnabled = Enum("Disabled", "Enabled")
	offOn           = Enum("Off", "On")
	celsius         = Unit("Celsius")
	kelvin          = Unit("Kelvin")
	watt            = Unit("Watt")
)

// Heatpump ist die Topic-Liste in Reihenfolge der TOP-Nummern
var Heatpump = []Topic{
	{"Heatpump_State", offOn},
	{"Pump_Flow", Unit("l/min")},
	{"Force_DHW_State", disabledEnabled},
	{"Quiet_Mode_Schedule", disabledEnabled},
	{"Operating_Mode_State", Enum(
		"Heat only", "Cool only", "Auto(Heat)", "DHW only", "Heat+DHW",
		"Cool+DHW", "Auto(Heat)+DHW", "Auto(Cool)", "Auto(Cool)+DHW",
	)},
	{"Main_Inlet_Temp", celsius},
	{"Main_Outlet_Temp", celsius},
	{"Main_Target_Temp", celsius},
	{"Compressor_Freq", Unit("Hertz")},
	{"DHW_Target_Temp", celsius},
	{"DHW_Temp", celsius},
	{"Operations_Hours", Unit("Hours")},
	{"Operations_Counter", Unit("Counter")},
	{"Main_Schedule_State", disabledEnabled},
	{"Outside_Temp", celsius},
	{"Heat_Energy_Production", watt},
	{"Heat_Energy_Consumption", watt},
	{"Powerful_Mode_Time", Enum("Off", "30min", "60min", "90min")},
	{"Quiet_Mode_Level", Enum("Off", "Level 1", "Level 2", "Level 3")},
	{"Holiday_Mode_State", Enum("Off", "Scheduled", "Active")},
	{"ThreeWay_Valve_State", Enum("Room", "DHW")},
	{"Outside_Pipe_Temp", celsius},
	{"DHW_Heat_Delta", kelvin},
	{"Heat_Delta", kelvin},
	{"Cool_Delta", kelvin},
	{"DHW_Holiday_Shift_Temp", kelvin},
	{"Defrosting_State", disabledEnabled},
	{"Z1_Heat_Request_Temp", celsius},
	{"Z1_Cool_Request_Temp", celsius},
	{"Z1_Heat_Curve_Target_High_Temp", celsius},
	{"Z1_Heat_Curve_Target_Low_Temp", celsius},
	{"Z1_Heat_Curve_Outside_High_Temp", celsius},
	{"Z1_Heat_Curve_Outside_Low_Temp", celsius},
	{"Room_Thermostat_Temp", celsius},
	{"Z2_Heat_Request_Temp", celsius},
	{"Z2_Cool_Request_Temp", celsius},
	{"Z1_Water_Temp", celsius},
	{"Z2_Water_Temp", celsius},
	{"Cool_Energy_Production", watt},
	{"Cool_Energy_Consumption", watt},
	{"DHW_Energy_Production", watt},
	{"DHW_Energy_Consumption", watt},
	{"Z1_Water_Target_Temp", celsius},
	{"Z2_Water_Target_Temp", celsius},
	{"Error", Unit("ErrorState")},
	{"Room_Holiday_Shift_Temp", kelvin},
	{"Buffer_Temp", celsius},
	{"Solar_Temp", celsius},
	{"Pool_Temp", celsius},
	{"Main_Hex_Outlet_Temp", celsius},
	{"Discharge_Temp", celsius},
	{"Inside_Pipe_Temp", celsius},
	{"Defrost_Temp", celsius},
	{"Eva_Outlet_Temp", celsius},
	{"Bypass_Outlet_Temp", celsius},
	{"Ipm_Temp", celsius},
	{"Z1_Temp", celsius},
	{"Z2_Temp", celsius},
	{"DHW_Heater_State", disabledEnabled},
	{"Room_Heater_State", disabledEnabled},
	{"Internal_Heater_State", Enum("Inactive", "Active")},
	{"External_Heater_State", Enum("Inactive", "Active")},
	{"Fan1_Motor_Speed", Unit("RPM")},
	{"Fan2_Motor_Speed", Unit("RPM")},
	{"High_Pressure", Unit("Kgf/cm2")},
	{"Pump_Speed", Unit("RPM")},
	{"Low_Pressure", Unit("Kgf/cm2")},
	{"Compressor_Current", Unit("Ampere")},
	{"Force_Heater_State", Enum("Inactive", "Active")},
	{"Sterilization_State", Enum("Inactive", "Active")},
	{"Sterilization_Temp", celsius},
	{"Sterilization_Max_Time", Unit("Minutes")},
}
